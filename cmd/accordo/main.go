package main

import (
	"github.com/yug-shah0106/accordo-engine/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
