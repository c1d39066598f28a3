// Package deck provides shell commands for deck memory.
package deck

import (
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/deckmem/pkg/cli/sh"
	"github.com/robotalks/deckmem/pkg/deck"
)

var (
	// DecksCmd queries the decks.
	DecksCmd = ishell.Cmd{
		Name:    "decks",
		Aliases: []string{"ls"},
		Help:    "",
		Func:    sh.MustBeConnected(decksCmd),
	}

	// ReadCmd reads deck memory.
	ReadCmd = ishell.Cmd{
		Name:    "read",
		Aliases: []string{"r"},
		Help:    "SLOT ADDR LEN",
		Func:    sh.MustBeConnected(readCmd),
	}

	// WriteCmd writes deck memory.
	WriteCmd = ishell.Cmd{
		Name:    "write",
		Aliases: []string{"w"},
		Help:    "SLOT ADDR HEXBYTES",
		Func:    sh.MustBeConnected(writeCmd),
	}

	// LanesCmd prints the state of request lanes.
	LanesCmd = ishell.Cmd{
		Name: "lanes",
		Help: "",
		Func: sh.MustBeConnected(lanesCmd),
	}
)

var errTimeout = fmt.Errorf("timeout")

func init() {
	sh.AddCmds(&DecksCmd, &ReadCmd, &WriteCmd, &LanesCmd)
}

func decksCmd(c *ishell.Context) {
	s := sh.ShellFrom(c)
	req, err := s.Manager().QueryDecks()
	if err != nil {
		c.Err(err)
		return
	}
	var res deck.QueryResult
	select {
	case res = <-req.ResultChan():
	case <-time.After(s.Timeout):
		c.Err(errTimeout)
		return
	}
	if res.Err != nil {
		c.Err(res.Err)
		return
	}
	infos := SortedInfos(res.Decks)
	if s.OutputJSON {
		sh.PrintJSON(c, infos)
		return
	}
	for _, info := range infos {
		c.Println(FormatInfo(info))
	}
}

// SortedInfos converts decks into Info sorted by slot.
func SortedInfos(decks map[int]*deck.Memory) []Info {
	infos := make([]Info, 0, len(decks))
	for _, mem := range decks {
		infos = append(infos, InfoOf(mem))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Slot < infos[j].Slot })
	return infos
}

func memoryArg(c *ishell.Context, expected int) (*deck.Memory, uint32, bool) {
	if len(c.Args) != expected {
		c.Err(fmt.Errorf("expect %d arguments", expected))
		return nil, 0, false
	}
	slot, err := ParseSlot(c.Args[0])
	if err != nil {
		c.Err(err)
		return nil, 0, false
	}
	addr, err := ParseAddress(c.Args[1])
	if err != nil {
		c.Err(err)
		return nil, 0, false
	}
	mem := sh.ShellFrom(c).Manager().Decks()[slot]
	if mem == nil {
		c.Err(fmt.Errorf("no deck in slot %d, try decks", slot))
		return nil, 0, false
	}
	return mem, addr, true
}

func readCmd(c *ishell.Context) {
	mem, addr, ok := memoryArg(c, 3)
	if !ok {
		return
	}
	length, err := ParseLength(c.Args[2])
	if err != nil {
		c.Err(err)
		return
	}
	req, err := mem.Read(addr, length)
	if err != nil {
		c.Err(err)
		return
	}
	s := sh.ShellFrom(c)
	var res deck.ReadResult
	select {
	case res = <-req.ResultChan():
	case <-time.After(s.Timeout):
		c.Err(errTimeout)
		return
	}
	if res.Err != nil {
		c.Err(res.Err)
		return
	}
	if s.OutputJSON {
		sh.PrintJSON(c, map[string]interface{}{
			"address": res.Address,
			"data":    hex.EncodeToString(res.Data),
		})
		return
	}
	c.Print(hex.Dump(res.Data))
}

func writeCmd(c *ishell.Context) {
	mem, addr, ok := memoryArg(c, 3)
	if !ok {
		return
	}
	data, err := ParseHex(c.Args[2])
	if err != nil {
		c.Err(err)
		return
	}
	req, err := mem.Write(addr, data)
	if err != nil {
		c.Err(err)
		return
	}
	var res deck.WriteResult
	select {
	case res = <-req.ResultChan():
	case <-time.After(sh.ShellFrom(c).Timeout):
		c.Err(errTimeout)
		return
	}
	if res.Err != nil {
		c.Err(res.Err)
		return
	}
	c.Printf("%d bytes written at 0x%x\n", len(data), res.Address)
}

func lanesCmd(c *ishell.Context) {
	m := sh.ShellFrom(c).Manager()
	for _, lane := range []deck.Lane{deck.LaneQuery, deck.LaneRead, deck.LaneWrite} {
		c.Printf("%-6s %s\n", lane, m.State(lane))
	}
}
