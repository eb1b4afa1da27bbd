package game

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/lox/bjtrainer/internal/count"
	"github.com/lox/bjtrainer/internal/deck"
	"github.com/lox/bjtrainer/internal/hand"
	"github.com/lox/bjtrainer/internal/strategy"
)

// Engine owns one training session: the shoe, the running count, the
// bankroll and the round in progress. Engines share nothing, so any number
// may run side by side. An Engine is not safe for concurrent use.
type Engine struct {
	rules  Rules
	rng    *rand.Rand
	shoe   *deck.Shoe
	logger *log.Logger
	bus    EventBus

	counter  count.Counter
	phase    Phase
	bankroll int
	round    int

	hands        []*hand.Hand
	active       int
	dealer       *hand.Hand
	holeRevealed bool
	results      []Result
	feedback     *Feedback
	reshuffled   bool

	handsUntilQuery   int
	needsVerification bool

	stats Stats
}

// Stats are running totals for the session.
type Stats struct {
	Rounds           int
	Decisions        int
	CorrectDecisions int
	CountChecks      int
	CorrectCounts    int
	Reshuffles       int
}

// CountResult is the grading of a count guess.
type CountResult struct {
	Correct bool
	Actual  int
}

// NewEngine creates an engine in the Betting phase with a freshly shuffled
// shoe. The RNG drives the shoe and the count-check schedule and is required.
func NewEngine(rng *rand.Rand, opts ...EngineOption) (*Engine, error) {
	if rng == nil {
		panic("rng is required for engine creation")
	}

	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.finish()

	if err := cfg.rules.Validate(); err != nil {
		return nil, err
	}
	if cfg.bankroll < 0 {
		return nil, fmt.Errorf("game: bankroll cannot be negative, got %d", cfg.bankroll)
	}

	shoe := cfg.shoe
	if shoe == nil {
		var err error
		shoe, err = deck.NewShoe(rng, cfg.rules.Decks, cfg.rules.Penetration)
		if err != nil {
			return nil, err
		}
	}

	e := &Engine{
		rules:    cfg.rules,
		rng:      rng,
		shoe:     shoe,
		logger:   cfg.logger.WithPrefix("engine"),
		bus:      cfg.bus,
		phase:    Betting,
		bankroll: cfg.bankroll,
	}
	e.handsUntilQuery = e.drawQueryInterval()
	return e, nil
}

// EventBus returns the bus engine events are published on
func (e *Engine) EventBus() EventBus {
	return e.bus
}

// Phase returns the current phase
func (e *Engine) Phase() Phase {
	return e.phase
}

// Bankroll returns the current bankroll
func (e *Engine) Bankroll() int {
	return e.bankroll
}

// Rules returns the table rules
func (e *Engine) Rules() Rules {
	return e.rules
}

// Stats returns the session totals
func (e *Engine) Stats() Stats {
	return e.stats
}

// NeedsCountVerification reports whether a count guess is due
func (e *Engine) NeedsCountVerification() bool {
	return e.needsVerification
}

func (e *Engine) drawQueryInterval() int {
	return minQueryInterval + e.rng.IntN(maxQueryInterval-minQueryInterval+1)
}

// StartRound takes a bet and deals the opening cards. It is accepted in the
// Betting and RoundOver phases once any pending count check is answered.
// A shoe past its penetration point, or too short for the opening deal, is
// reshuffled first, zeroing the count.
func (e *Engine) StartRound(bet int) (Snapshot, error) {
	if e.phase != Betting && e.phase != RoundOver {
		return Snapshot{}, fmt.Errorf("%w: cannot start a round during %s", ErrIllegalAction, e.phase)
	}
	if e.needsVerification {
		return Snapshot{}, fmt.Errorf("%w: count verification pending", ErrIllegalAction)
	}
	if bet <= 0 || bet > e.bankroll {
		return Snapshot{}, fmt.Errorf("%w: bet %d with bankroll %d", ErrInvalidBet, bet, e.bankroll)
	}

	e.reshuffled = false
	if e.shoe.NeedsReshuffle() || e.shoe.Remaining() < openingCards {
		e.reshuffle()
	}
	if e.shoe.Remaining() < openingCards {
		return Snapshot{}, fmt.Errorf("game: opening deal: %w", deck.ErrEmptyShoe)
	}

	e.round++
	e.bankroll -= bet
	player := hand.New(bet)
	dealer := hand.New(0)

	// Player, dealer up, player, dealer hole. Shoe size was checked above.
	for _, h := range []*hand.Hand{player, dealer, player, dealer} {
		c, _ := e.shoe.Draw()
		h.Add(c)
	}
	e.counter.Observe(player.Cards[0], dealer.Cards[0], player.Cards[1])

	e.hands = []*hand.Hand{player}
	e.dealer = dealer
	e.active = 0
	e.holeRevealed = false
	e.results = nil
	e.feedback = nil
	e.phase = PlayerTurn

	e.logger.Debug("Dealt round",
		"round", e.round,
		"bet", bet,
		"player", player,
		"upcard", dealer.Cards[0],
		"remaining", e.shoe.Remaining())
	e.bus.Publish(RoundStartEvent{Round: e.round, Bet: bet})

	if player.IsBlackjack() || dealer.IsBlackjack() {
		player.Stood = true
		e.logger.Debug("Natural dealt", "round", e.round,
			"player", player.IsBlackjack(), "dealer", dealer.IsBlackjack())
		e.enterDealerTurn()
	}

	return e.Snapshot(), nil
}

func (e *Engine) reshuffle() {
	before := e.counter.Running()
	e.shoe.Reshuffle()
	e.counter.Reset()
	e.reshuffled = true
	e.stats.Reshuffles++
	e.logger.Debug("Reshuffled shoe", "round", e.round+1, "discardedCount", before)
	e.bus.Publish(ReshuffleEvent{Round: e.round + 1, CountBefore: before})
}

// reshuffleDiscards rebuilds the shoe mid-round from every card not on the
// table. The count restarts from the cards the player can see.
func (e *Engine) reshuffleDiscards() {
	before := e.counter.Running()
	var table, visible []deck.Card
	for _, h := range e.hands {
		table = append(table, h.Cards...)
		visible = append(visible, h.Cards...)
	}
	table = append(table, e.dealer.Cards...)
	for i, c := range e.dealer.Cards {
		if i != 1 || e.holeRevealed {
			visible = append(visible, c)
		}
	}

	e.shoe.ReshuffleDiscards(table)
	e.counter.Reset()
	e.counter.Observe(visible...)
	e.reshuffled = true
	e.stats.Reshuffles++
	e.logger.Debug("Reshuffled discards mid-round", "round", e.round,
		"discardedCount", before, "remaining", e.shoe.Remaining())
	e.bus.Publish(ReshuffleEvent{Round: e.round, CountBefore: before, MidRound: true})
}

// reserve makes sure n cards can be drawn during a round, reshuffling the
// discards when the shoe has run short.
func (e *Engine) reserve(n int) error {
	if e.shoe.Remaining() < n {
		e.reshuffleDiscards()
	}
	if e.shoe.Remaining() < n {
		return deck.ErrEmptyShoe
	}
	return nil
}

// NextRound clears the table after a resolved round.
func (e *Engine) NextRound() (Snapshot, error) {
	if e.phase != RoundOver {
		return Snapshot{}, fmt.Errorf("%w: cannot clear the table during %s", ErrIllegalAction, e.phase)
	}
	e.phase = Betting
	e.hands = nil
	e.dealer = nil
	e.results = nil
	e.feedback = nil
	e.holeRevealed = false
	e.reshuffled = false
	return e.Snapshot(), nil
}

// activeHand returns the hand the player is acting on.
func (e *Engine) activeHand(action strategy.Action) (*hand.Hand, error) {
	if e.phase != PlayerTurn {
		return nil, fmt.Errorf("%w: cannot %s during %s", ErrIllegalAction, action, e.phase)
	}
	h := e.hands[e.active]
	if h.IsTerminal() {
		return nil, fmt.Errorf("%w: hand %d is finished", ErrIllegalAction, e.active+1)
	}
	return h, nil
}

func (e *Engine) checkDouble(h *hand.Hand) error {
	switch {
	case !h.CanDouble():
		return fmt.Errorf("%w: double requires exactly two cards", ErrIllegalAction)
	case h.FromSplit && !e.rules.DoubleAfterSplit:
		return fmt.Errorf("%w: double after split is not allowed", ErrIllegalAction)
	case e.bankroll < h.Bet:
		return fmt.Errorf("%w: bankroll %d cannot cover double of %d", ErrIllegalAction, e.bankroll, h.Bet)
	}
	return nil
}

func (e *Engine) checkSplit(h *hand.Hand) error {
	switch {
	case !h.CanSplit():
		return fmt.Errorf("%w: split requires two cards of equal rank", ErrIllegalAction)
	case len(e.hands) >= e.rules.MaxHands:
		return fmt.Errorf("%w: already playing %d hands", ErrIllegalAction, len(e.hands))
	case e.bankroll < h.Bet:
		return fmt.Errorf("%w: bankroll %d cannot cover split of %d", ErrIllegalAction, e.bankroll, h.Bet)
	}
	return nil
}

// recommend grades against what the player could legally do with h.
func (e *Engine) recommend(h *hand.Hand) strategy.Action {
	allowed := strategy.Allowed{
		Double: e.checkDouble(h) == nil,
		Split:  e.checkSplit(h) == nil,
	}
	return strategy.RecommendFor(h.Cards, e.dealer.Cards[0], allowed)
}

func (e *Engine) recordFeedback(action, recommended strategy.Action) {
	fb := Feedback{
		HandIndex:   e.active,
		Action:      action,
		Recommended: recommended,
		Correct:     action == recommended,
	}
	e.feedback = &fb
	e.stats.Decisions++
	if fb.Correct {
		e.stats.CorrectDecisions++
	}
	e.logger.Debug("Player action",
		"round", e.round,
		"hand", e.active,
		"action", action,
		"recommended", recommended)
	e.bus.Publish(PlayerActionEvent{Round: e.round, Feedback: fb})
}

// Advice returns the basic-strategy action for the active hand without
// acting on it.
func (e *Engine) Advice() (strategy.Action, error) {
	if e.phase != PlayerTurn {
		return 0, fmt.Errorf("%w: no hand to advise on during %s", ErrIllegalAction, e.phase)
	}
	return e.recommend(e.hands[e.active]), nil
}

// Hit draws one card to the active hand. A bust finishes the hand.
func (e *Engine) Hit() (Snapshot, error) {
	h, err := e.activeHand(strategy.Hit)
	if err != nil {
		return Snapshot{}, err
	}
	if err := e.reserve(1); err != nil {
		return Snapshot{}, fmt.Errorf("game: hit: %w", err)
	}
	rec := e.recommend(h)
	c, _ := e.shoe.Draw()

	e.recordFeedback(strategy.Hit, rec)
	h.Add(c)
	e.counter.Observe(c)
	if h.IsBust() {
		e.advance()
	}
	return e.Snapshot(), nil
}

// Stand finishes the active hand.
func (e *Engine) Stand() (Snapshot, error) {
	h, err := e.activeHand(strategy.Stand)
	if err != nil {
		return Snapshot{}, err
	}

	e.recordFeedback(strategy.Stand, e.recommend(h))
	h.Stood = true
	e.advance()
	return e.Snapshot(), nil
}

// DoubleDown doubles the active hand's bet, draws exactly one card and
// finishes the hand.
func (e *Engine) DoubleDown() (Snapshot, error) {
	h, err := e.activeHand(strategy.Double)
	if err != nil {
		return Snapshot{}, err
	}
	if err := e.checkDouble(h); err != nil {
		return Snapshot{}, err
	}
	if err := e.reserve(1); err != nil {
		return Snapshot{}, fmt.Errorf("game: double: %w", err)
	}
	rec := e.recommend(h)
	c, _ := e.shoe.Draw()

	e.recordFeedback(strategy.Double, rec)
	e.bankroll -= h.Bet
	h.Bet *= 2
	h.Doubled = true
	h.Add(c)
	e.counter.Observe(c)
	h.Stood = true
	e.advance()
	return e.Snapshot(), nil
}

// Split separates a pair into two hands, each with a copy of the bet and a
// second card. The new hand is played right after the current one. Split
// aces take one card each and stand.
func (e *Engine) Split() (Snapshot, error) {
	h, err := e.activeHand(strategy.Split)
	if err != nil {
		return Snapshot{}, err
	}
	if err := e.checkSplit(h); err != nil {
		return Snapshot{}, err
	}
	if err := e.reserve(2); err != nil {
		return Snapshot{}, fmt.Errorf("game: split: %w", err)
	}
	rec := e.recommend(h)
	first, _ := e.shoe.Draw()
	second, _ := e.shoe.Draw()

	e.recordFeedback(strategy.Split, rec)
	e.bankroll -= h.Bet

	split := hand.New(h.Bet)
	split.FromSplit = true
	split.Add(h.Cards[1])
	h.Cards = h.Cards[:1]
	h.FromSplit = true

	h.Add(first)
	split.Add(second)
	e.counter.Observe(first, second)

	e.hands = slices.Insert(e.hands, e.active+1, split)

	if h.Cards[0].IsAce() {
		h.Stood = true
		split.Stood = true
		e.advance()
	}
	return e.Snapshot(), nil
}

// Apply performs action on the active hand.
func (e *Engine) Apply(action strategy.Action) (Snapshot, error) {
	switch action {
	case strategy.Hit:
		return e.Hit()
	case strategy.Stand:
		return e.Stand()
	case strategy.Double:
		return e.DoubleDown()
	case strategy.Split:
		return e.Split()
	}
	return Snapshot{}, fmt.Errorf("%w: unknown action %d", ErrIllegalAction, action)
}

// advance moves to the next unfinished hand, or to the dealer once every
// player hand is finished.
func (e *Engine) advance() {
	for e.active < len(e.hands) && e.hands[e.active].IsTerminal() {
		e.active++
	}
	if e.active >= len(e.hands) {
		e.enterDealerTurn()
	}
}

func (e *Engine) enterDealerTurn() {
	e.phase = DealerTurn
	e.active = len(e.hands)
}

// SubmitCountGuess grades a running count guess. It is only accepted while a
// verification is pending; afterwards the next check is scheduled 1 to 3
// rounds out.
func (e *Engine) SubmitCountGuess(value int) (CountResult, error) {
	if !e.needsVerification {
		return CountResult{}, ErrNotPrompted
	}

	actual := e.counter.Running()
	res := CountResult{Correct: value == actual, Actual: actual}

	e.needsVerification = false
	e.handsUntilQuery = e.drawQueryInterval()
	e.stats.CountChecks++
	if res.Correct {
		e.stats.CorrectCounts++
	}

	e.logger.Debug("Count verified",
		"round", e.round,
		"guess", value,
		"actual", actual,
		"nextCheckIn", e.handsUntilQuery)
	e.bus.Publish(CountVerifiedEvent{Round: e.round, Guess: value, Actual: actual, Correct: res.Correct})
	return res, nil
}
