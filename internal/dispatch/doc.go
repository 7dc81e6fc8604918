// Package dispatch is the single boundary the UI calls through.
//
// Every operation is a distinct Go type implementing Request. Transports
// decode a wire name plus JSON arguments with Decode, then hand the typed
// request to Dispatcher.Dispatch, which switches exhaustively over the
// closed set of request types.
//
// Consistency rules enforced here rather than by the store:
//   - A product may only be added to an existing section
//   - Deleting a section deletes its products first, in one transaction
//   - Deleting an order deletes its line items first, in one transaction
//   - A product referenced by an order line cannot be deleted, directly or
//     through its section; the whole operation fails with CodeInUse
//   - Line items snapshot the product price at insert time
//
// Edit, delete and set-paid on an absent id are no-ops, not errors.
// Every failure is returned as an *Error carrying a Code the transports
// map onto the wire.
package dispatch
