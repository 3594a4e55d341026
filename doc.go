// Package docmerge provides a provider-agnostic Go library for mail-merge
// document generation: .docx templates with {placeholder} tokens are filled
// from tabular data (CSV, XLSX, XLS), one document per row, and the results
// are dispatched by email or routed for e-signature.
//
// # Basic Usage
//
//	tpl, err := docmerge.LoadTemplate("letter.docx", []string{"Signature"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	table, err := docmerge.LoadDataFile("recipients.csv")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	mapping := docmerge.AutoMap(tpl.Placeholders(), table.Columns())
//	docs, err := tpl.GenerateAll(table.RowsAsMaps(mapping), docmerge.AutoNamer())
//
// Generated documents can be zipped with BuildArchive or sent as
// personalized attachments:
//
//	client, err := docmerge.New(docmerge.DefaultConfig(),
//		docmerge.WithSMTPAuth("smtp.example.com", "587", "me@example.com", "me", "secret"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.SendBatch(ctx, jobs, func(current, total int, status string) {
//		log.Printf("%d/%d %s", current, total, status)
//	})
//
// # Supported Transports
//
//   - Generic SMTP
//   - AWS SES
//   - SendGrid
//   - Mailgun
//
// # Features
//
//   - Placeholder discovery and substitution across body, tables, headers and footers
//   - Substitution across runs split by the word processor
//   - Reserved placeholders for downstream e-signature anchoring
//   - Numeric values mirrored as spelled-out word columns
//   - Placeholder-to-column auto-mapping
//   - One transport connection per batch with per-job failure isolation
//   - Non-blocking progress reporting
//   - E-signature routing via DocuSign, Adobe Sign or Zoho Sign
//   - Distributed tracing with OpenTelemetry
//   - Context-aware operations
//   - Thread-safe operations
package docmerge
