package main

import (
	"heckel.io/slacknotify/cmd"
	"log"
	"os"
)

func main() {
	if err := cmd.New().Run(os.Args); err != nil {
		log.Fatalln(err.Error())
	}
}
