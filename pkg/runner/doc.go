/*
Package runner implements the interactive chat loop around a dialog engine.

It acts as the bridge between the policy engine and a terminal or a pipe. The
runner reads a line, lets a Matcher turn it into user acts (standing in for a
real NLU), runs the turn and prints the system utterances through a pluggable
IOHandler.

# Key Components

  - Runner: The loop HandleTurn -> Output -> Input -> Match.
  - IOHandler: Decouples how results are shown and input is read (Text, JSON).
  - ExactMatcher: Picks answers by exact text or candidate number and fills
    answer templates such as {{ AGE = NUMBER }} into the belief state.
  - Sanitize: Size, UTF-8 and control character policy shared with transports.

# Usage

	r := runner.NewRunner(engine, engine.Graphs(),
		runner.WithUser("cli"),
		runner.WithGraph("age"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if _, err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
