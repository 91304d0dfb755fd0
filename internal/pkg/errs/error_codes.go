/*
Package errs provides custom error types and application-level error code constants.

These error codes classify the failure modes of the chat client: wire
encoding/decoding, room and content validation, connection session state,
and remote API calls. They are used both internally and in user-visible
error banners.
*/
package errs

// 1xxx: Wire Codec Errors
const (
	// ErrEncoding indicates a local attachment could not be read or encoded for sending.
	ErrEncoding = 1101

	// ErrDecode indicates an inbound frame was not parseable; the frame is dropped.
	ErrDecode = 1102
)

// 2xxx: Room and Content Errors
const (
	// ErrRoomIDInvalid indicates the provided room identifier is malformed.
	ErrRoomIDInvalid = 2101

	// ErrNoRoomSelected indicates an operation requiring an active room was attempted without one.
	ErrNoRoomSelected = 2102

	// ErrMessageEmpty indicates a send was attempted with no text and no attachment.
	ErrMessageEmpty = 2201

	// ErrMessageContentTooLong indicates the message text exceeded the maximum length limit.
	ErrMessageContentTooLong = 2202

	// ErrFileSizeTooLarge indicates the staged attachment exceeded the size cap.
	ErrFileSizeTooLarge = 2301

	// ErrAttachmentInvalid indicates the staged attachment is missing a name or MIME type,
	// or its extension contradicts the declared MIME type.
	ErrAttachmentInvalid = 2302
)

// 3xxx: Connection Session Errors
const (
	// ErrNotConnected indicates a send was attempted while the session is not Open.
	ErrNotConnected = 3101

	// ErrSendThrottled indicates the outgoing send rate limit was exceeded.
	ErrSendThrottled = 3102

	// ErrSendBufferFull indicates the session's outgoing queue is full.
	ErrSendBufferFull = 3103

	// ErrServerReported carries an error frame reported by the chat server;
	// the connection remains open.
	ErrServerReported = 3104
)

// 4xxx: Remote API Errors
const (
	// ErrHistoryLoad indicates the message backlog fetch for a room failed.
	ErrHistoryLoad = 4101

	// ErrRosterLoad indicates the contact directory fetch failed.
	ErrRosterLoad = 4102
)

// 5xxx: Internal Errors
const (
	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000
)
