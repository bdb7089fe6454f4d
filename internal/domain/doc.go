// Package domain models the Brazilian wildfire incident dataset (1998–2017)
// and the per-year, per-state aggregates derived from it.
//
// # Data Source
//
// Incident counts come from the public "Forest Fires in Brazil" dataset
// (amazon.csv), originally compiled from the Brazilian government's SISAM
// system. The file is Latin-1 encoded and has one row per (year, state,
// month) report:
//
//	year,state,month,number,date
//	1998,Acre,Janeiro,0,1998-01-01
//
// The date column duplicates year/month and is dropped on load.
//
// # Source Conventions
//
// Month names:
//
//	Portuguese month names ("Janeiro" .. "Dezembro") are translated to
//	English ([time.January] .. [time.December]). Anything else becomes a
//	missing month (the zero [time.Month]); no error is raised.
//
// State names:
//
//	The source spells most states without diacritics ("Amapa", "Sao Paulo")
//	and truncates a few ("Piau", "Rio"). Each source spelling is translated to
//	the accented Portuguese name used by the state code lookup
//	("Amapá", "São Paulo", "Piauí", "Rio de Janeiro"). Unknown spellings
//	become a missing state ("").
//
// Numbers:
//
//	Fire counts are read as float64 exactly as written. Some rows carry a
//	thousands separator that the source parses as a decimal point
//	(e.g. "1.095"); the value is kept as-is.
//
// # State Codes
//
// Each canonical state is joined to its two-letter ISO 3166-2 subdivision
// code ("AC", "SP", "DF") from the lookup table. The code keys the boundary
// GeoJSON features through their properties.sigla field. A state absent from
// the lookup keeps an empty code; the join is a left join and never fails.
//
// # Aggregates
//
// [Aggregate] sums Number per (year, state) across all months for every year
// of the requested range and every distinct state, producing zero rather than
// a missing value for a state with no reports that year. Rows are ordered by
// year and then by each state's first appearance in the incident table.
package domain
