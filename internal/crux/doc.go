// Package crux fetches Chrome UX Report popularity rankings from BigQuery and
// reduces them to registrable domains.
//
// The package exposes three pieces that compose into a Downloader:
//
// RowSource: runs the scope's ranking query for a YYYYMM month. BigQuerySource
// is the production implementation.
//
// DomainExtractor: maps an origin such as "https://sub.example.co.uk" to its
// registrable domain using the Public Suffix List. PublicSuffixExtractor is the
// production implementation.
//
// Downloader: fetches a month, maps origins to domains, and keeps the best
// (lowest) rank per domain.
//
// Example usage:
//
//	source, err := crux.NewBigQuerySource(ctx, creds, cfg.Query)
//	if err != nil {
//	    return err
//	}
//	downloader := crux.NewDownloader(source, crux.NewPublicSuffixExtractor(), logger)
//	records, err := downloader.DumpMonthToDomainRanks(ctx, crux.ScopeGlobal, 202501)
package crux
