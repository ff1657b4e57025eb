package model

import "time"

// Post represents a blog entry in the `posts` table. A post belongs to
// exactly one author for its entire lifetime; updates may change the
// title and content but never the author or the creation date.
//
// Fields:
//  ID       – primary key identifier.
//  AuthorID – owning user; immutable after creation.
//  Title    – post title.
//  Content  – post body text.
//  Date     – creation timestamp, set once on insert.
type Post struct {
	ID       uint64    // posts.id
	AuthorID uint64    // posts.author_id
	Title    string    // posts.title
	Content  string    // posts.content
	Date     time.Time // posts.date
}
