package crux

// Standard SQL for each scope. The single positional parameter is the INT64
// YYYYMM month.
const (
	GlobalSQL = "SELECT distinct origin, experimental.popularity.rank\n" +
		"FROM `chrome-ux-report.experimental.global`\n" +
		"WHERE yyyymm = ?\n" +
		"GROUP BY origin, experimental.popularity.rank\n" +
		"ORDER BY experimental.popularity.rank;"

	CountrySQL = "SELECT distinct country_code, origin, experimental.popularity.rank\n" +
		"FROM `chrome-ux-report.experimental.country`\n" +
		"WHERE yyyymm = ?\n" +
		"GROUP BY country_code, origin, experimental.popularity.rank\n" +
		"ORDER BY country_code, experimental.popularity.rank;"
)

// SQLFor returns the ranking query for scope
func SQLFor(scope Scope) string {
	if scope == ScopeCountry {
		return CountrySQL
	}
	return GlobalSQL
}

// columnsFor is the number of result columns the scope's query selects
func columnsFor(scope Scope) int {
	if scope == ScopeCountry {
		return 3
	}
	return 2
}
