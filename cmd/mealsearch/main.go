package main

import "github.com/pageza/mealsearch/backend/internal/cli"

func main() {
	cli.Execute()
}
