package main

import "github.com/Bochyn/Image-to-video/internal/cmd"

func main() {
	cmd.Execute()
}
