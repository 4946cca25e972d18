package types

const (
	ContextSessionKey   = "session"
	ContextRequestIDKey = "request_id"

	RequestIDHeader = "X-Request-ID"
)

// Flash messages shown to the browser.
const (
	FlashLoginToSave        = "You must be logged in to save your results."
	FlashUserNotFound       = "User not found. Could not save emission."
	FlashEmailTaken         = "Email already registered."
	FlashRegistered         = "Registration successful! Please log in."
	FlashRegistrationFailed = "An error occurred during registration."
	FlashBadCredentials     = "Incorrect email or password."
	FlashAdminLoggedIn      = "Admin login successful!"
	FlashNotAdmin           = "Invalid login credentials or you're not an admin."
	FlashLoggedOut          = "You have been logged out."
	FlashLoginRequired      = "Please log in to continue."
	FlashPredictionFailed   = "Could not calculate your footprint. Please try again."
	FlashPostNotFound       = "Post not found."
	FlashCommentNotFound    = "Comment not found."
	FlashPostDeleted        = "Post deleted."
	FlashCommentDeleted     = "Comment deleted."
	FlashSomethingWrong     = "Something went wrong. Please try again."
)
