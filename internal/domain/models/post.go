package models

// RawPost is a single listing entry produced by a PostSource.
type RawPost struct {
	Text    string
	Upvotes int
}
