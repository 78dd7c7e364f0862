/*
Package diagraph is a dialog policy engine. It walks an authored dialog graph
one turn at a time and tells the caller what to say next.

# Concept

A graph is made of typed nodes: START, INFO, QUESTION, VARIABLE, UPDATE and
LOGIC. Each turn the engine resumes the user's cursor, applies the user acts
(answers picked, variables filled), crosses the silent and soft steps and
stops at the next node that needs the user. The result carries the system
utterances, the answer candidates, the node id and the belief state, the
key/value memory that templates such as {{ AGE }} read from.

Graphs are loaded from editor exports (.json, .yaml), SQLite databases or
Loam directories of node documents. Cursors live in memory or Redis, and
turn results can be published to Redis channels.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/diagraph"
		"github.com/aretw0/diagraph/pkg/ports"
	)

	func main() {
		eng, err := diagraph.New("./graphs/age.json")
		if err != nil {
			log.Fatal(err)
		}
		defer eng.Close()

		ctx := context.Background()
		res, err := eng.HandleTurn(ctx, ports.TurnRequest{UserID: "alice", GraphID: "age"})
		if err != nil {
			log.Fatal(err)
		}
		for _, text := range res.Texts() {
			fmt.Println(text)
		}
		fmt.Println(res.Candidates)
	}

The cmd/diagraph binary wraps the same engine in an interactive chat, an HTTP
server with server-sent events, an MCP server and graph tooling.
*/
package diagraph
