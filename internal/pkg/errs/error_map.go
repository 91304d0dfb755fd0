/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
user-visible error banners and internal error handling.
*/
package errs

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and, where the error
// originates from an HTTP call, the associated status code.
var errorMap = map[int]CustomError{
	// 1xxx: Wire Codec Errors
	ErrEncoding: {Code: ErrEncoding, Message: "Could not read the attached file. The message was not sent."},
	ErrDecode:   {Code: ErrDecode, Message: "Received an unreadable message from the server."},

	// 2xxx: Room and Content Errors
	ErrRoomIDInvalid:         {Code: ErrRoomIDInvalid, Message: "Invalid conversation identifier."},
	ErrNoRoomSelected:        {Code: ErrNoRoomSelected, Message: "No conversation selected."},
	ErrMessageEmpty:          {Code: ErrMessageEmpty, Message: "Nothing to send."},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrFileSizeTooLarge:      {Code: ErrFileSizeTooLarge, Message: "File is too large (limit %d MB)."},
	ErrAttachmentInvalid:     {Code: ErrAttachmentInvalid, Message: "Invalid attachment."},

	// 3xxx: Connection Session Errors
	ErrNotConnected:   {Code: ErrNotConnected, Message: "Not connected. Your message was kept; try again once online."},
	ErrSendThrottled:  {Code: ErrSendThrottled, Message: "You are sending messages too quickly. Please slow down."},
	ErrSendBufferFull: {Code: ErrSendBufferFull, Message: "Too many messages queued. Please try again."},
	ErrServerReported: {Code: ErrServerReported, Message: "%s"},

	// 4xxx: Remote API Errors
	ErrHistoryLoad: {Code: ErrHistoryLoad, Message: "Could not load the conversation history."},
	ErrRosterLoad:  {Code: ErrRosterLoad, Message: "Failed to load contacts."},

	// 5xxx: Internal Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again."},
}
