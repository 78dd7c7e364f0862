/*
Package session serializes per-user dialog turns.

It provides a Manager that guards each user's cursor with an in-process mutex
(reference counted, so idle users hold no memory) and, optionally, a distributed
lock so several replicas can share one session store.
*/
package session
