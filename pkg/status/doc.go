/*
Package status tracks what a batch did to each document and reports it.

	+-----------+       +-----------+       +-----------+
	|  provider | ----> |  Manager  | ----> | formatter |
	| (batches) |       | (tracking)|       |  (UI/UX)  |
	+-----------+       +-----+-----+       +-----------+
	                          |
	                    +-----+-----+
	                    |   diffs   |
	                    |  (stats)  |
	                    +-----------+

🎯 Purpose:
  - Tracks document status (new, modified, unchanged, failed)
  - Measures each rewrite with a character-level diff
  - Renders unified diffs for dry runs
  - Formats progress for multi-document batches

🔍 Example:

	reporter := status.New()
	reporter.StartOperation(ctx, len(docs))

	reporter.TrackDocument(ctx, status.DocumentInfo{
		URI:    doc.URI,
		Status: status.StatusModified,
		Stats:  status.Compute(before, after),
	})

	fmt.Print(status.UnifiedDiff(doc.URI, before, after))
*/
package status
