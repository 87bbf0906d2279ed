package main

import (
	"github.com/themadorg/maildrop"
)

func main() {
	maildrop.Run()
}
