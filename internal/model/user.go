package model

import "time"

// User represents an application user record as stored in the `users`
// table. Each field corresponds to a column in the database. The json
// tags are omitted here because these structs are used internally by
// the repository layer; handlers define separate response types with
// appropriate JSON tags.
//
// Fields:
//  ID                – primary key identifier of the user.
//  Username          – unique public handle.
//  Email             – unique email address.
//  PasswordHash      – bcrypt hashed password.
//  ImgFile           – stored filename of the avatar image. New accounts
//                      start with the "default.jpeg" sentinel, which is
//                      never deleted when an avatar is replaced.
//  PasswordChangedAt – watermark updated whenever the password is set.
//                      Reset tokens issued before this instant are
//                      rejected, so a consumed token cannot be replayed.
//  CreatedAt         – timestamp of creation.
//  UpdatedAt         – timestamp of last update.
type User struct {
	ID                uint64    // users.id
	Username          string    // users.username
	Email             string    // users.email
	PasswordHash      string    // users.password_hash
	ImgFile           string    // users.img_file
	PasswordChangedAt time.Time // users.password_changed_at
	CreatedAt         time.Time // users.created_at
	UpdatedAt         time.Time // users.updated_at
}

// DefaultAvatar is the sentinel avatar filename assigned to new
// accounts. It is shared by all users and exempt from cleanup when an
// uploaded avatar replaces it.
const DefaultAvatar = "default.jpeg"
