// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is a backend identifier. The backend sends numbers or strings; both
// decode to their decimal string form.
type ID string

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("api: id must be a number or string: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Author is the public face of a user attached to posts and comments.
type Author struct {
	Username string `json:"username"`
	Photo    string `json:"photo,omitempty"`
}

// Post is a photo post.
type Post struct {
	ID        ID         `json:"id"`
	Caption   string     `json:"caption"`
	Content   string     `json:"content"` // image file name
	Author    Author     `json:"author"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`

	// Counts are only sent by backends that aggregate them for feeds.
	TotalLikes    int `json:"totalLikes,omitempty"`
	TotalComments int `json:"totalComments,omitempty"`
}

// Comment is a comment on a post.
type Comment struct {
	ID   ID     `json:"id"`
	Text string `json:"text"`
	User Author `json:"user"`
}

// PostDetail is a post with its comments and like state.
type PostDetail struct {
	Post       Post      `json:"post"`
	Comments   []Comment `json:"comments"`
	TotalLikes int       `json:"totalLikes"`
	IsLiked    bool      `json:"isLiked"`
}

// Feed is the home timeline.
type Feed struct {
	Message    string `json:"message"`
	Posts      []Post `json:"posts"`
	LoggedUser string `json:"loggedUser"`
}

// Profile is a user's editable profile record.
type Profile struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Bio      string `json:"bio"`
	Career   string `json:"career"`
	Photo    string `json:"photo"`
}

// ProfileWithPosts is a profile page: the user and their posts.
type ProfileWithPosts struct {
	User  Profile `json:"user"`
	Posts []Post  `json:"posts"`
}

// ProfileSummary is one search hit.
type ProfileSummary struct {
	Username     string `json:"username"`
	FullName     string `json:"fullName"`
	ProfilePhoto string `json:"profilePhoto"`
}

// RegisterRequest is the registration form.
type RegisterRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is a successful login.
type LoginResult struct {
	Message    string `json:"message"`
	LoggedUser string `json:"loggedUser"`
}

// NewPost is the create-post form. ImagePath names a local file.
type NewPost struct {
	Caption    string
	ImagePath  string
	LoggedUser string
}

// ProfileUpdate is the edit/create profile form. PhotoPath is optional.
type ProfileUpdate struct {
	Username  string
	Fullname  string
	Bio       string
	Career    string
	PhotoPath string
}

// UpdateResult is the backend reply to a profile update. LoggedUser is the
// possibly renamed session identity.
type UpdateResult struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	LoggedUser string `json:"loggedUser"`
}
