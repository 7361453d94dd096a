// Package browser abstracts the remote document session the publishing
// workflow runs against.
package browser

import "context"

// Element is one located element in the remote document.
type Element interface {
	Click(ctx context.Context) error
	Type(ctx context.Context, text string) error
	SetFiles(ctx context.Context, paths ...string) error
}

// Session is an authenticated remote document session. One session is held
// for the duration of a run and only one workflow executes against it at a
// time.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// Find returns every element matching the selector; an empty slice
	// means the elements are not present yet.
	Find(ctx context.Context, selector string) ([]Element, error)
}
