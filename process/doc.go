/*
Package process spawns and supervises a single child process started
through the platform shell, like the os/exec package, but shaped for
a supervisor that runs many commands side by side.

A Process is created with Spawn and then controlled with three
operations: Kill delivers a signal, TryWait polls for the exit code
without blocking and ForwardStdio starts copying the child output to
the program's own standard streams, one labeled line at a time:

	p, err := process.Spawn("make watch", "", process.Piped)
	if err != nil {
		return err
	}
	done := p.ForwardStdio(process.NewID(0, "make watch"), os.Stdout, os.Stderr)

Every forwarded line is written as "{sequence}: {line}", stdout lines
to the first writer and stderr lines to the second. The returned
channel is closed once both streams are drained. Calling Mute holds
back the stdout lines (stderr is never muted) until Unmute is called;
after Release the held lines are dropped instead. The flag is only a
display hint and never affects process control.

# Unix

The command runs as "sh -c <command>" in a new process group, and Kill
sends the signal to the whole group, so anything the shell forks dies
with it. Killing a process that already exited is not an error.

# Windows

The command runs as "cmd.exe /c <command>" in a new process group.
Windows has no signals, so Kill ignores the requested Signal and calls
the terminate primitive on the child.
*/
package process
