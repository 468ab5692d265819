package repositories

type ErrNotFound struct {
}

func (e *ErrNotFound) Error() string {
	return "not found"
}

func IsNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}

type ErrDuplicateSubmission struct {
	SubmissionID string
}

func (e *ErrDuplicateSubmission) Error() string {
	return "duplicate submission " + e.SubmissionID
}

func IsDuplicateSubmission(err error) bool {
	_, ok := err.(*ErrDuplicateSubmission)
	return ok
}
