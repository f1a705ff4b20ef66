// Package textutil provides small text helpers shared by the job runners and
// the CLI: ASCII folding for status lines shown on limited terminals and a
// generic conditional.
package textutil
