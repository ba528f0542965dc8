package repository

import "time"

// Creator is a tippable profile shown in the feed and creator views.
type Creator struct {
	ID        string
	Name      string
	Handle    string
	Bio       string
	Address   string
	Avatar    string
	Followers int
	TipsCount int
	Following bool
	SortOrder int
}

// Post is a feed entry.
type Post struct {
	ID        string
	CreatorID string
	Body      string
	Likes     int
	TipsCount int
	CreatedAt time.Time

	// joined from creators
	CreatorName   string
	CreatorHandle string
}

// Community represents a community row.
type Community struct {
	ID          string
	Name        string
	Description string
	Members     int
	Joined      bool
}

// Event represents an event row.
type Event struct {
	ID        string
	Title     string
	HostID    *string
	HostName  string
	Location  string
	StartsAt  time.Time
	Attendees int
}

// Badge represents a badge row.
type Badge struct {
	ID        string
	CreatorID string
	Name      string
	Icon      string
}

// Profile is the JSON blob stored per wallet address.
type Profile struct {
	Address   string    `json:"-"`
	Name      string    `json:"name"`
	Handle    string    `json:"handle,omitempty"`
	Bio       string    `json:"bio"`
	Email     string    `json:"email"`
	Website   string    `json:"website"`
	Avatar    string    `json:"avatar"`
	UpdatedAt time.Time `json:"-"`
}

// Session is the connected wallet account.
type Session struct {
	Address     string
	Name        string
	ConnectedAt time.Time
}

// TipRecord is one submission attempt.
type TipRecord struct {
	ID            string
	Sender        string
	RecipientID   string
	RecipientName string
	ToAddress     string
	Asset         string
	Amount        string
	RawAmount     string
	Message       string
	Status        string
	TxHash        string
	Error         string
	CreatedAt     time.Time
}
