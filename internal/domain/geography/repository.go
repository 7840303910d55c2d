package geography

import "context"

// ApplicantRepository is the read-side contract for applicant data.
type ApplicantRepository interface {
	// PrimaryApplicantCountries returns, for each application that has one,
	// the country of its primary applicant (lowest applicant sequence
	// number with a non-empty country).  Region is left blank; assignment
	// happens in the service.  An empty input returns an empty slice
	// without a query.
	PrimaryApplicantCountries(ctx context.Context, applnIDs []int64) ([]ApplicantCountry, error)
}
