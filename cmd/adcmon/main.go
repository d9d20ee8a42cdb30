// adcmon tails the text stream a board emits on its serial console: the
// configuration dump at boot and whatever the application prints afterwards.
//
//	adcmon -port /dev/ttyACM0 -baud 115200
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"

	"github.com/tarm/serial"
)

func main() {
	port := flag.String("port", "/dev/ttyACM0", "serial device")
	baud := flag.Int("baud", 115200, "baud rate")
	flag.Parse()

	p, err := serial.OpenPort(&serial.Config{Name: *port, Baud: *baud})
	if err != nil {
		log.Fatalf("open %s: %v", *port, err)
	}
	defer p.Close()

	sc := bufio.NewScanner(p)
	for sc.Scan() {
		fmt.Println(sc.Text())
	}
	if err := sc.Err(); err != nil {
		log.Fatalf("read %s: %v", *port, err)
	}
}
