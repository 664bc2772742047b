/*
Package operation drives a translation run over a file mapping.

	+--------------+
	| Orchestrator |
	|  (per file)  |
	+------+-------+
	       |
	+------+------+      +-----------+
	|   Prompt    +----->+ Generate  |
	| (per chunk) |      | (backend) |
	+------+------+      +-----+-----+
	       |                   |
	+------+-------------------+------+
	|      Status (destination)       |
	+---------------------------------+

🎯 Purpose:
- Skips files whose destination already exists
- Splits each source into chunks and calls the backend once per chunk, in order
- Streams the provenance header and every result into the destination
- Isolates failures to the file that caused them

🔄 Flow per file:
1. Read the source and strip comment lines
2. Create the destination exclusively (an existing file is skipped)
3. Write the provenance header
4. Render, call, rewrite and append each chunk
5. Close and mark written

⚠️ Failure handling:
- A read or backend error fails the file and the run moves on
- A failed file keeps whatever was written before the error
- Cancellation removes the in-progress destination and cancels the rest

🔍 Example:

	orch, err := operation.New(operation.Options{
		Builder: builder,
		Client:  client,
		Files:   status.New(""),
	})
	report, err := orch.Run(ctx, m)
*/
package operation
