/*
Package domain contains the core entities of the lively engine.

The central entity is the Overlay: a tracked span of document text paired
with a lively (evaluate-and-render) behavior and an Active/Frozen state.
Entities here are plain data; all mutation goes through the engine runtime,
which serializes access.
*/
package domain
