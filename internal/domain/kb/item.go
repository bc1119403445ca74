package kb

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
)

type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

func ParseVoteDirection(s string) (VoteDirection, error) {
	switch VoteDirection(strings.ToLower(s)) {
	case VoteUp:
		return VoteUp, nil
	case VoteDown:
		return VoteDown, nil
	default:
		return "", fmt.Errorf("invalid vote direction: %s", s)
	}
}

// Item is a question and answer. votedBy and downvotedBy are disjoint sets
// of user IDs.
type Item struct {
	id                  uint
	categoryID          uint
	title               string
	question            string
	answer              string
	votes               int
	recommendations     int
	votedBy             map[uint]struct{}
	downvotedBy         map[uint]struct{}
	lastUpdated         time.Time
	order               int
	enabled             bool
	team                string
	allowTicketCreation bool
}

type ItemContent struct {
	CategoryID          uint
	Title               string
	Question            string
	Answer              string
	Order               int
	Enabled             bool
	Team                string
	AllowTicketCreation bool
}

func NewItem(c ItemContent) (*Item, error) {
	it := &Item{
		votedBy:     map[uint]struct{}{},
		downvotedBy: map[uint]struct{}{},
	}
	if err := it.apply(c); err != nil {
		return nil, err
	}
	return it, nil
}

type ItemData struct {
	ID              uint
	Content         ItemContent
	Votes           int
	Recommendations int
	VotedBy         []uint
	DownvotedBy     []uint
	LastUpdated     time.Time
}

func ReconstructItem(d ItemData) (*Item, error) {
	if d.ID == 0 {
		return nil, fmt.Errorf("item ID cannot be zero")
	}
	it := &Item{
		id:                  d.ID,
		categoryID:          d.Content.CategoryID,
		title:               d.Content.Title,
		question:            d.Content.Question,
		answer:              d.Content.Answer,
		votes:               d.Votes,
		recommendations:     d.Recommendations,
		votedBy:             make(map[uint]struct{}, len(d.VotedBy)),
		downvotedBy:         make(map[uint]struct{}, len(d.DownvotedBy)),
		lastUpdated:         d.LastUpdated,
		order:               d.Content.Order,
		enabled:             d.Content.Enabled,
		team:                d.Content.Team,
		allowTicketCreation: d.Content.AllowTicketCreation,
	}
	for _, id := range d.VotedBy {
		it.votedBy[id] = struct{}{}
	}
	for _, id := range d.DownvotedBy {
		it.downvotedBy[id] = struct{}{}
	}
	return it, nil
}

func (it *Item) Update(c ItemContent) error {
	return it.apply(c)
}

func (it *Item) apply(c ItemContent) error {
	if c.CategoryID == 0 {
		return fmt.Errorf("category is required")
	}
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > 100 {
		return fmt.Errorf("title exceeds maximum length of 100 characters")
	}
	if strings.TrimSpace(c.Question) == "" {
		return fmt.Errorf("question is required")
	}
	if strings.TrimSpace(c.Answer) == "" {
		return fmt.Errorf("answer is required")
	}
	it.categoryID = c.CategoryID
	it.title = title
	it.question = c.Question
	it.answer = c.Answer
	it.order = c.Order
	it.enabled = c.Enabled
	it.team = strings.TrimSpace(c.Team)
	it.allowTicketCreation = c.AllowTicketCreation
	it.lastUpdated = biztime.NowUTC()
	return nil
}

// VoteChange is what one Vote call altered. Votes and Recommendations are
// deltas to the item's counters.
type VoteChange struct {
	UserID          uint
	Direction       VoteDirection
	Changed         bool
	Votes           int
	Recommendations int
}

// Vote records userID's vote. Voting the same direction twice is a no-op;
// switching direction moves the user between the two sets.
//
// The counters follow the long-standing semantics: votes counts every vote
// cast (a switch adds one and removes one), recommendations is up minus
// down.
func (it *Item) Vote(userID uint, dir VoteDirection) (VoteChange, error) {
	if userID == 0 {
		return VoteChange{}, fmt.Errorf("user is required to vote")
	}
	var target, opposite map[uint]struct{}
	delta := 0
	switch dir {
	case VoteUp:
		target, opposite, delta = it.votedBy, it.downvotedBy, 1
	case VoteDown:
		target, opposite, delta = it.downvotedBy, it.votedBy, -1
	default:
		return VoteChange{}, fmt.Errorf("invalid vote direction: %s", dir)
	}

	vc := VoteChange{UserID: userID, Direction: dir}
	if _, ok := target[userID]; !ok {
		target[userID] = struct{}{}
		vc.Votes++
		vc.Recommendations += delta
		vc.Changed = true
	}
	if _, ok := opposite[userID]; ok {
		delete(opposite, userID)
		vc.Votes--
		vc.Changed = true
	}
	it.votes += vc.Votes
	it.recommendations += vc.Recommendations
	return vc, nil
}

func (it *Item) ID() uint {
	return it.id
}

func (it *Item) CategoryID() uint {
	return it.categoryID
}

func (it *Item) Title() string {
	return it.title
}

func (it *Item) Question() string {
	return it.question
}

func (it *Item) Answer() string {
	return it.answer
}

func (it *Item) Votes() int {
	return it.votes
}

func (it *Item) Recommendations() int {
	return it.recommendations
}

// Score is recommendations per vote, 0 without votes.
func (it *Item) Score() float64 {
	if it.votes <= 0 {
		return 0
	}
	return float64(it.recommendations) / float64(it.votes)
}

// VotedBy returns the upvoters in ascending order.
func (it *Item) VotedBy() []uint {
	return sortedIDs(it.votedBy)
}

func (it *Item) DownvotedBy() []uint {
	return sortedIDs(it.downvotedBy)
}

func (it *Item) HasUpvoted(userID uint) bool {
	_, ok := it.votedBy[userID]
	return ok
}

func (it *Item) HasDownvoted(userID uint) bool {
	_, ok := it.downvotedBy[userID]
	return ok
}

func (it *Item) LastUpdated() time.Time {
	return it.lastUpdated
}

func (it *Item) Order() int {
	return it.order
}

func (it *Item) IsEnabled() bool {
	return it.enabled
}

func (it *Item) Team() string {
	return it.team
}

func (it *Item) AllowTicketCreation() bool {
	return it.allowTicketCreation
}

func (it *Item) Content() ItemContent {
	return ItemContent{
		CategoryID:          it.categoryID,
		Title:               it.title,
		Question:            it.question,
		Answer:              it.answer,
		Order:               it.order,
		Enabled:             it.enabled,
		Team:                it.team,
		AllowTicketCreation: it.allowTicketCreation,
	}
}

func (it *Item) SetID(id uint) error {
	if it.id != 0 {
		return fmt.Errorf("item ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("item ID cannot be zero")
	}
	it.id = id
	return nil
}

func sortedIDs(set map[uint]struct{}) []uint {
	out := make([]uint, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
