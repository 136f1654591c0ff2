package mcpserver

// SimilarityRules explains to MCP clients how links between notes arise and
// how the layout treats them.
const SimilarityRules = `# Notegraph Similarity Rules

Two notes are linked when they share vocabulary or tags.

## Link rule

1. Content is lower-cased and split on whitespace.
2. A token counts only when it is longer than the minimum token length
   (default 4 characters, so "water" counts and "tree" does not).
3. Tags are compared exactly.
4. ` + "`" + `weight = |shared tokens| + |shared tags|` + "`" + `. A link exists only when the
   weight is positive, and there is at most one link per pair of notes.
5. In tags-only mode, content is ignored.

## Layout

- Linked notes are pulled toward a rest distance; every pair repels.
- The simulation cools down and settles; dragging a node or changing the note
  set reheats it.
- At most one note is expanded at a time. Selecting another note collapses the
  previous one.

## Example

| note | content              | tags       |
|------|----------------------|------------|
| A    | hiking trail water   | outdoors   |
| B    | water supply valve   | plumbing   |
| C    | unrelated            | outdoors   |

Links: A-B (weight 1, token "water"), A-C (weight 1, tag "outdoors").
`
