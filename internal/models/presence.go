package models

// PresenceData is the decoded shape of one presence JSON snapshot. The source
// has historically served at least two shapes for the same logical query:
// precinct-level detail, a flat published total, or county-level detail. Absent
// arrays decode to nil, which extraction uses to tell "missing" from "empty".
type PresenceData struct {
	Precinct []PrecinctRecord `json:"precinct"`
	County   []CountyRecord   `json:"county"`
	TotalV   int64            `json:"totalv"`
}

// PrecinctRecord is one polling-station record. For foreign precincts the
// administrative unit name is the host country.
type PrecinctRecord struct {
	UAT        UATRef `json:"uat"`
	TotalVotes int64  `json:"LT"`
}

// UATRef names the administrative unit a precinct belongs to.
type UATRef struct {
	Name string `json:"name"`
}

// CountyRecord is one county-level aggregate record.
type CountyRecord struct {
	TotalVotes int64 `json:"LT"`
}
