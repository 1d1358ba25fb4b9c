package leave

import "errors"

var (
	ErrLeaveRequestNotFound         = errors.New("leave request not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave request has already been approved or rejected")
	ErrLeaveOverlaps                = errors.New("an overlapping leave request already exists")
	ErrNotRequestOwner              = errors.New("leave request belongs to another student")
	ErrInvalidDateRange             = errors.New("end date must not be before start date")
)
