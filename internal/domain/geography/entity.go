// Package geography enriches a dataset with the country of each
// application's primary applicant and rolls the countries up into regions.
package geography

import "sort"

// ApplicantCountry ties one application to the country of its primary
// applicant.  Applications without a resolvable applicant country are simply
// absent from the enrichment result.
type ApplicantCountry struct {
	ApplnID  int64  `json:"appln_id"`
	PersonID int64  `json:"person_id"`
	Country  string `json:"country"`
	Region   string `json:"region"`
}

// CountryCount is one row of the per-country frequency table.
type CountryCount struct {
	Country      string `json:"country"`
	Region       string `json:"region"`
	Applications int64  `json:"applications"`
}

// Summary is the geographic enrichment of one dataset.
type Summary struct {
	// Applicants lists the per-application country assignments.
	Applicants []ApplicantCountry `json:"applicants"`

	// Countries is the frequency table, sorted by application count
	// descending, country code ascending on ties.
	Countries []CountryCount `json:"countries"`

	// Regions maps region name to total applications.
	Regions map[string]int64 `json:"regions"`
}

// DistinctCountries returns the number of distinct applicant countries.
func (s *Summary) DistinctCountries() int64 {
	if s == nil {
		return 0
	}
	return int64(len(s.Countries))
}

// IsEmpty reports whether no applicant countries were resolved.
func (s *Summary) IsEmpty() bool {
	return s == nil || len(s.Applicants) == 0
}

// summarize builds the frequency table and region rollup from assignments.
func summarize(applicants []ApplicantCountry) *Summary {
	byCountry := make(map[string]*CountryCount)
	regions := make(map[string]int64)
	for _, a := range applicants {
		c, ok := byCountry[a.Country]
		if !ok {
			c = &CountryCount{Country: a.Country, Region: a.Region}
			byCountry[a.Country] = c
		}
		c.Applications++
		regions[a.Region]++
	}

	counts := make([]CountryCount, 0, len(byCountry))
	for _, c := range byCountry {
		counts = append(counts, *c)
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Applications != counts[j].Applications {
			return counts[i].Applications > counts[j].Applications
		}
		return counts[i].Country < counts[j].Country
	})

	return &Summary{Applicants: applicants, Countries: counts, Regions: regions}
}
