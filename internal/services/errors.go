package services

import "github.com/votopopular/civic-api/internal/apperr"

// Messages for authorization failures are generic on purpose: they never
// reveal whether a resource exists in another municipality.
var (
	ErrUnauthenticated      = apperr.New(apperr.Unauthenticated, "", "authentication required")
	ErrForbidden            = apperr.New(apperr.Forbidden, "", "you do not have permission to perform this action")
	ErrProposalNotFound     = apperr.New(apperr.NotFound, "proposal_not_found", "proposal not found")
	ErrMunicipalityNotFound = apperr.New(apperr.NotFound, "municipality_not_found", "municipality not found")
	ErrUserNotFound         = apperr.New(apperr.NotFound, "user_not_found", "user not found")
	ErrComplaintNotFound    = apperr.New(apperr.NotFound, "complaint_not_found", "complaint not found")
	ErrAlreadyVoted         = apperr.New(apperr.Conflict, "already_voted", "you have already voted on this proposal")
	ErrVotingClosed         = apperr.New(apperr.Conflict, "voting_closed", "this proposal is not open for voting")
	ErrInvalidTransition    = apperr.New(apperr.Conflict, "invalid_transition", "this proposal can no longer change to that status")
	ErrSlugTaken            = apperr.New(apperr.Conflict, "slug_taken", "a municipality with this id already exists")
	ErrEmailTaken           = apperr.New(apperr.Conflict, "email_taken", "this email is already registered")
	ErrCPFTaken             = apperr.New(apperr.Conflict, "cpf_taken", "this CPF is already registered")
	ErrAlreadyBound         = apperr.New(apperr.Conflict, "already_bound", "you already belong to a municipality")
	ErrTooManyAttempts      = apperr.New(apperr.RateLimited, "", "too many failed attempts, try again later")
)
