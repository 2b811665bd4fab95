package main

import "github.com/frahmantamala/inventory-management/cmd"

func main() {
	cmd.Execute()
}
