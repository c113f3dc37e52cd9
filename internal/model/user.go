package model

import "time"

// Role separates regular players from admins
type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

// User is the client-side snapshot of a backend user document
type User struct {
	ID                Ref        `json:"_id" bson:"_id"`
	Username          string     `json:"username" bson:"username"`
	Email             string     `json:"email,omitempty" bson:"email,omitempty"`
	Avatar            string     `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Bio               string     `json:"bio,omitempty" bson:"bio,omitempty"`
	Role              Role       `json:"role,omitempty" bson:"role,omitempty"`
	MatchesPlayed     int        `json:"matchesPlayed" bson:"matchesPlayed"`
	WinCount          int        `json:"winCount" bson:"winCount"`
	Achievements      []string   `json:"achievements,omitempty" bson:"achievements,omitempty"`
	Followers         []Ref      `json:"followers,omitempty" bson:"followers,omitempty"`
	Following         []Ref      `json:"following,omitempty" bson:"following,omitempty"`
	IsOnline          bool       `json:"isOnline,omitempty" bson:"-"`
	IsFollowing       bool       `json:"isFollowing,omitempty" bson:"-"`
	IsFollowBack      bool       `json:"isFollowBack,omitempty" bson:"-"`
	LastSeen          *time.Time `json:"lastSeen,omitempty" bson:"-"`
	ProfileIncomplete bool       `json:"profileIncomplete,omitempty" bson:"profileIncomplete,omitempty"`
	CreatedAt         *time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

// IsAdmin reports whether the user holds the admin role
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Avatar upload for register and profile edits
type Avatar struct {
	Filename string
	Data     []byte
}
