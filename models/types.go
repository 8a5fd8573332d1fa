package models

import "time"

// Account roles
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleVolunteer = "volunteer"
	RoleUser      = "user"
)

// Form field names of the post creation form
const (
	FieldBoard   = "board"
	FieldParent  = "parent"
	FieldOp      = "op"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldBody    = "body"
	FieldCaptcha = "captcha"
)

// DefaultOp is the poster name used when the op field is left empty.
const DefaultOp = "Anonymous"

// Request types

// PostInput is one submitted post form, filled field by field while the
// multipart body is parsed. Files is nil when no file field was seen.
type PostInput struct {
	Board   string   `json:"board"`
	Parent  *int64   `json:"parent,omitempty"`
	Op      string   `json:"op"`
	Email   string   `json:"email"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	Captcha string   `json:"-"`
	Files   []string `json:"files,omitempty"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Response types

type BoardsResponse struct {
	Boards []Board `json:"boards"`
}

type BoardPageResponse struct {
	Board        string `json:"board"`
	Posts        []Post `json:"posts"`
	CaptchaImage string `json:"captcha_image,omitempty"`
}

type ThreadResponse struct {
	Board        string `json:"board"`
	Post         Post   `json:"post"`
	Children     []Post `json:"children"`
	CaptchaImage string `json:"captcha_image,omitempty"`
}

type CreatePostResponse struct {
	ID     int64    `json:"id"`
	Board  string   `json:"board"`
	Parent *int64   `json:"parent,omitempty"`
	Files  []string `json:"files"`
}

type LoginResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type SignupResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type ModResponse struct {
	Username string `json:"username"`
	Users    []User `json:"users"`
}

// Domain types

type Board struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Posts int64  `json:"posts"`
}

type Post struct {
	ID      int64     `json:"id"`
	Parent  *int64    `json:"parent,omitempty"`
	Board   string    `json:"board"`
	Created time.Time `json:"created"`
	Op      string    `json:"op"`
	Email   string    `json:"email,omitempty"`
	Subject string    `json:"subject,omitempty"`
	Body    string    `json:"body,omitempty"`
	Files   []string  `json:"files"`
}

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Created      time.Time `json:"created"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
