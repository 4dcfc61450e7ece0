// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns used by hand-written SQL, so a
// column rename is a compile error rather than a runtime one.
package schema

import "strings"

// UserAccountTable represents the 'users.account' table.
type UserAccountTable struct {
	Table         string
	ID            string
	Username      string
	Email         string
	FullName      string
	AvatarURL     string
	CoverImageURL string
	Password      string
	RefreshToken  string
	CreatedAt     string
	UpdatedAt     string
}

// UserAccount is the schema definition for users.account.
var UserAccount = UserAccountTable{
	Table:         "users.account",
	ID:            "id",
	Username:      "username",
	Email:         "email",
	FullName:      "fullname",
	AvatarURL:     "avatarurl",
	CoverImageURL: "coverimageurl",
	Password:      "passwordhash",
	RefreshToken:  "refreshtoken",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

// PublicColumns returns the columns safe to hand back to clients, in scan order.
func (t UserAccountTable) PublicColumns() []string {
	return []string{t.ID, t.Username, t.Email, t.FullName, t.AvatarURL, t.CoverImageURL, t.CreatedAt, t.UpdatedAt}
}

// Columns returns every column, secrets included.
func (t UserAccountTable) Columns() []string {
	return append(t.PublicColumns(), t.Password, t.RefreshToken)
}

// List joins column names for a SELECT or RETURNING clause.
func List(columns ...string) string {
	return strings.Join(columns, ", ")
}
