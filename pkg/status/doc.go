/*
Package status manages destination files and the state of every file in a
translation run.

	            +-------------+
	            |   Tracker   |
	            |   (State)   |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+-----+
	|   Files   |           | Reporter |
	| (Storage) |           | (UI/UX)  |
	+-----------+           +----------+

🎯 Purpose:
- Creates destinations exclusively, never overwriting
- Tracks each file through the pipeline states
- Reports progress as files finish

🔄 File states:

	PENDING -> READING -> GENERATING (per chunk) -> WRITTEN
	                  \            \
	                   \            +-> FAILED | CANCELLED
	                    +-> WRITTEN (pass-through) | FAILED | SKIPPED | CANCELLED

SKIPPED means the destination appeared between resume filtering and creation.
A CANCELLED file has its partial destination removed by the caller.

🤝 Interfaces:
- FileManager: exclusive create, read, remove, atomic write
- Reporter: progress display (pterm bar, recorder, no-op)
- FileFormatter: wording of log lines

🔍 Example:

	files := status.New("")
	tracker := status.NewTracker(status.NewBarReporter(os.Stderr, "translating"))

	tracker.Start(ctx, paths)
	w, err := files.Create(ctx, dest)
	_ = tracker.Transition(ctx, path, status.StateWritten, nil)
	tracker.Finish(ctx)
*/
package status
