// Package directory resolves user ids to display names and roles.
package directory

import "time"

const CollectionName = "users"

// User is a document in the users collection, keyed by the identity provider uid.
type User struct {
	UID         string    `bson:"_id" json:"uid"`
	Email       string    `bson:"email,omitempty" json:"email,omitempty"`
	DisplayName string    `bson:"display_name" json:"display_name"`
	Role        string    `bson:"role" json:"role"`
	Department  string    `bson:"department,omitempty" json:"department,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// Profile is the part of a user viewers are labelled with.
type Profile struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

func (u User) Profile() Profile {
	return Profile{UID: u.UID, DisplayName: u.DisplayName, Role: u.Role}
}
