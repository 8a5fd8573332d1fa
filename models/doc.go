// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - PostInput: one parsed post form (board, parent, op, email, subject,
    body, captcha answer, stored file names)
  - Credentials: username, password, role (admin area)

PostInput is filled from multipart fields named by the Field* constants.

# Response Types

Types for JSON responses:

  - BoardsResponse: boards
  - BoardPageResponse: board, posts, captcha_image
  - ThreadResponse: board, post, children, captcha_image
  - CreatePostResponse: id, board, parent, files
  - LoginResponse, SignupResponse, ModResponse
  - ErrorResponse: error, message

captcha_image is a data URL (data:image/png;base64,...) of the challenge
bound to the cookie set on the same response.

# Domain Types

  - Board: short name, title, post counter
  - Post: a thread opener (Parent nil) or a reply
  - User: admin area account

# Constants

Roles:

	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleVolunteer = "volunteer"
	RoleUser      = "user"
*/
package models
