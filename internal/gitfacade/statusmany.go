package gitfacade

import "github.com/polysafe/polysafe/internal/worker"

// StatusMany fetches the status of every repo in repos concurrently,
// fanning out across CPUs the way a single-repo git status call cannot:
// each invocation shells out to git and blocks on its own subprocess, so
// running them one at a time wastes most of a multi-repo sweep's wall
// clock waiting on I/O that other repos could be doing in parallel.
// Results preserve the input order regardless of completion order.
func StatusMany(repos []string) []worker.Result[*RepoStatus] {
	pool := worker.NewPool[*RepoStatus](0)
	return pool.Process(repos, Status)
}
