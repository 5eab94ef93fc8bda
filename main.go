package main

import "github.com/Ishita-02/The-DeFi-App/cmd"

func main() {
	cmd.Execute()
}
