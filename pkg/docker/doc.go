// Package docker talks to the Docker daemon on behalf of the docker engine
// type.
//
// Two concerns live here:
//
//   - Engine wraps the Docker SDK client to report the state of the
//     containers belonging to a compose project (filtered by the
//     com.docker.compose.project label) and to pull service images.
//   - Tool runs a throwaway container with the project mounted at /app. It
//     backs tools such as composer when they are not installed on the host.
//
// # Usage Example
//
//	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer cli.Close()
//
//	containers, err := docker.NewEngine(cli).ProjectContainers(ctx, "acme")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, c := range containers {
//		fmt.Println(c.Service, c.State)
//	}
package docker
