// Command camsnap collects still images from fixed traffic cameras on a
// schedule.
package main

import "github.com/roadwatch/camsnap/cmd"

func main() {
	cmd.Execute()
}
