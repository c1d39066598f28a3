package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"

	"github.com/golang/glog"

	fx "github.com/robotalks/deckmem/pkg/framework"
	"github.com/robotalks/deckmem/pkg/env"
	"github.com/robotalks/deckmem/pkg/memlink"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()

	conf := env.NewConfig()
	board, err := conf.Board()
	if err != nil {
		log.Fatalln(err)
	}
	ln, err := conf.Listen()
	if err != nil {
		log.Fatalln(err)
	}
	glog.Infof("board memory %d serving on %s", board.MemoryID(), ln.Addr())
	for slot, desc := range board.Decks() {
		glog.Infof("slot %d: %s at 0x%x [%s]", slot, desc.Name, desc.BaseAddress, desc.Flags)
	}

	srv := memlink.NewServer(board)
	r := fx.NewRunner().HandleSignals()
	r.StopOnError = true
	r.Go(fx.NamedRun("memlink", fx.RunFunc(func(ctx context.Context) error {
		return srv.ServeListener(ctx, ln)
	})))
	if err := r.Wait(); err != nil {
		log.Fatalln(err)
	}
}
