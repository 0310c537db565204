// Road Vision: lane overlay and concurrent object detection over video

package main

import (
	"os"

	"road-vision/cmd/app/commands"
)

func main() {
	os.Exit(commands.Execute())
}
