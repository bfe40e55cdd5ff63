package models

import "time"

// Post type constants
const (
	PostTypePost    = "post"
	PostTypeComment = "comment"
	PostTypeArticle = "article"
	PostTypePoll    = "poll"
)

// Channel type constants
const (
	ChannelPublic  = "public"
	ChannelPrivate = "private"
)

// Poll limits
const (
	MinPollOptions       = 2
	MaxPollOptions       = 4
	DefaultDurationHours = 24
)

// Request types

type RegisterUserRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Bio      string `json:"bio"`
}

type CreateChannelRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id"`
}

type PollOptionInput struct {
	Text  string `json:"text"`
	Order int    `json:"order"`
}

type CreatePollRequest struct {
	PostID        string            `json:"post_id"`
	DurationHours int               `json:"duration_hours"`
	Options       []PollOptionInput `json:"options"`
}

// PostPollInput is the poll part of a CreatePostRequest; the post ID comes
// from the post being created.
type PostPollInput struct {
	DurationHours int               `json:"duration_hours"`
	Options       []PollOptionInput `json:"options"`
}

type CreatePostRequest struct {
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Type      string         `json:"type"`
	ChannelID *string        `json:"channel_id,omitempty"`
	ParentID  *string        `json:"parent_id,omitempty"`
	Poll      *PostPollInput `json:"poll,omitempty"`
}

type CastVoteRequest struct {
	PollID   string `json:"poll_id"`
	OptionID string `json:"option_id"`
}

// ChangeVoteRequest accepts option_id as an alias of new_option_id.
type ChangeVoteRequest struct {
	NewOptionID string `json:"new_option_id"`
	OptionID    string `json:"option_id"`
}

// Response types

type RegisterUserResponse struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

type CastVoteResponse struct {
	Vote         Vote `json:"vote"`
	AlreadyVoted bool `json:"already_voted"`
}

type PollResponse struct {
	PollWithOptions
	UserVote *Vote `json:"user_vote,omitempty"`
}

type PostWithPollResponse struct {
	Post Post             `json:"post"`
	Poll *PollWithOptions `json:"poll,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Domain types

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
}

type Channel struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	CreatedBy   *string   `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	ChannelID *string   `json:"channel_id,omitempty"`
	ParentID  *string   `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Poll struct {
	ID            string    `json:"id"`
	PostID        string    `json:"post_id"`
	DurationHours int       `json:"duration_hours"`
	IsActive      bool      `json:"is_active"`
	TotalVotes    int       `json:"total_votes"`
	CreatedAt     time.Time `json:"created_at"`
}

type PollOption struct {
	ID        string `json:"id"`
	PollID    string `json:"poll_id"`
	Text      string `json:"text"`
	Order     int    `json:"order"`
	VoteCount int    `json:"vote_count"`
}

type PollWithOptions struct {
	Poll    Poll         `json:"poll"`
	Options []PollOption `json:"options"`
}

type Vote struct {
	ID        string    `json:"id"`
	PollID    string    `json:"poll_id"`
	OptionID  string    `json:"option_id"`
	UserID    string    `json:"user_id"`
	IPHash    *string   `json:"-"` // Never expose in JSON
	UserAgent *string   `json:"-"` // Never expose in JSON
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OptionResult struct {
	OptionID   string  `json:"option_id"`
	Text       string  `json:"text"`
	Order      int     `json:"order"`
	VoteCount  int     `json:"vote_count"`
	Percentage float64 `json:"percentage"` // 0-100, two decimals
}

type PollResults struct {
	PollID     string         `json:"poll_id"`
	TotalVotes int            `json:"total_votes"`
	IsActive   bool           `json:"is_active"`
	Options    []OptionResult `json:"options"`
}

// CommentSummary describes the distinct authors replying anywhere below a post.
type CommentSummary struct {
	Count int      `json:"count"`
	Names []string `json:"names"`
	Me    bool     `json:"me"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}
