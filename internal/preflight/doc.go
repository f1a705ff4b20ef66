// Package preflight provides readiness checks for output directories and the
// external tools downconv depends on.
//
// These checks run in two contexts:
//   - The job runners call Output once before a batch or queue starts. A
//     failure aborts the whole run before any tool is invoked.
//   - The CLI "downconv deps" command uses CheckSystemDeps and RunAll to
//     display tool and directory health.
package preflight
