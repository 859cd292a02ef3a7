// Package executor runs external processes as steps of a pipeline.
//
// A Step is one process invocation plus its execution policy. A Sequence is an
// ordered list of steps with a single mode flag: sequential (each step waits
// for the previous one) or concurrent (every step is dispatched on its own
// goroutine and Run returns immediately).
//
// # Step execution
//
// A step either streams live on the invoking terminal (verbose) or has its
// combined stdout and stderr captured into a log file and shown as a
// transient progress line. Every run returns a typed Result:
//
//	success  zero exit, no error marker in the captured output
//	warning  zero exit but "error:" found in the output, or a non-zero exit
//	         under the lenient exit policy
//	failure  the process could not be started, or exited non-zero under the
//	         strict exit policy, or was cancelled
//
// Captured argv steps are always strict. Failures never cross the step
// boundary: a Sequence always runs (or dispatches) every step.
//
// # Cancellation
//
// Sequence.Run returns an Execution whose Cancel terminates each running
// child, SIGTERM first and SIGKILL after the grace period. Captured children
// lead their own process group, which is signalled as a whole. Verbose
// children stay in the terminal's foreground group so they can read stdin and
// change terminal modes; Ctrl-C reaches them through the terminal and Cancel
// signals the child itself. There are no timeouts.
//
// # Usage Example
//
//	seq := executor.NewSequence()
//	seq.Add(executor.MustNew("docker compose build", executor.WithLogTarget("build")))
//	seq.Add(
//		executor.MustNew("docker compose up -d"),
//		executor.MustNew("docker compose stop"),
//	)
//	results := seq.Run(ctx, &executor.Runtime{Logs: executor.NewLogStore(".logs")}).Wait()
//	if executor.Summarize(results).HasFailures() {
//		// optional aggregate handling
//	}
package executor
