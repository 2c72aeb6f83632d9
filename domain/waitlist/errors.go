package waitlist

import (
	apperrors "github.com/hutmuts/hutmuts-api/pkg/errors"
)

// Public wire messages. The landing page matches on these strings, so they are
// part of the API contract.
const (
	MsgJoined             = "Successfully joined the waitlist"
	MsgInvalidRequestData = "Invalid request data"
	MsgEmailAlreadyOnList = "This email is already on the waitlist"
	MsgJoinFailed         = "Failed to join waitlist. Please try again."
	MsgListFailed         = "Failed to retrieve waitlist"
)

// NewEmailAlreadyOnListError reports a duplicate email. The contract surfaces
// duplicates as a 400, not a 409, so it is typed as an invalid request.
func NewEmailAlreadyOnListError(err error) *apperrors.AppError {
	return apperrors.NewInvalidRequestError(MsgEmailAlreadyOnList, err)
}
