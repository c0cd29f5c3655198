package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/mm2s/mem/idealburstmem"
	"github.com/sarchlab/mm2s/mem/mem"
	"github.com/sarchlab/mm2s/mover"
	"github.com/sarchlab/mm2s/sim"
	"github.com/sarchlab/mm2s/sim/directconnection"
	"github.com/sarchlab/mm2s/stream"
	"github.com/sarchlab/mm2s/tracing"
)

var (
	flagSrcAddress    uint64
	flagLengthBytes   uint64
	flagMaxBurstWords uint64
	flagWordSize      uint64
	flagBufferDepth   int
	flagMemLatency    int
	flagSinkEvery     int
	flagFaultAddr     int64
	flagTraceCSV      string
	flagTraceDB       string
)

var rootCmd = &cobra.Command{
	Use:   "mm2s",
	Short: "Simulate a memory-to-stream data mover moving one transfer.",
	Long: `mm2s builds a small simulated system with a data mover, an ideal ` +
		`burst memory, and a stream sink, then runs one transfer through it ` +
		`and reports the outcome.`,
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Uint64Var(&flagSrcAddress, "src-address", 0x1000,
		"byte address the transfer reads from")
	rootCmd.Flags().Uint64Var(&flagLengthBytes, "length", 512,
		"number of bytes to move")
	rootCmd.Flags().Uint64Var(&flagMaxBurstWords, "max-burst-words", 16,
		"requested burst length cap, in words")
	rootCmd.Flags().Uint64Var(&flagWordSize, "word-size", 8,
		"word size in bytes")
	rootCmd.Flags().IntVar(&flagBufferDepth, "buffer-depth", 16,
		"elastic buffer capacity, in words")
	rootCmd.Flags().IntVar(&flagMemLatency, "mem-latency", 4,
		"cycles before the memory streams the first word of a burst")
	rootCmd.Flags().IntVar(&flagSinkEvery, "sink-every", 1,
		"the sink accepts one word every this many cycles")
	rootCmd.Flags().Int64Var(&flagFaultAddr, "fault-addr", -1,
		"inject a fault at this word address, -1 for none")
	rootCmd.Flags().StringVar(&flagTraceCSV, "trace-csv", "",
		"write a task trace to this CSV file")
	rootCmd.Flags().StringVar(&flagTraceDB, "trace-db", "",
		"write a task trace to this SQLite database")
}

// driver submits the transfer request and waits for the completion response.
type driver struct {
	*sim.TickingComponent

	port sim.Port

	toSend []sim.Msg
	rsps   []*mover.TransferDoneRsp
}

func newDriver(engine sim.Engine) *driver {
	d := &driver{}
	d.TickingComponent = sim.NewTickingComponent(
		"Driver", engine, 1*sim.GHz, d)
	d.port = sim.NewPort(d, 4, 4, "Driver.Ctrl")
	d.AddPort("Ctrl", d.port)

	return d
}

func (d *driver) Tick() bool {
	madeProgress := false

	if len(d.toSend) > 0 {
		err := d.port.Send(d.toSend[0])
		if err == nil {
			d.toSend = d.toSend[1:]
			madeProgress = true
		}
	}

	msg := d.port.RetrieveIncoming()
	if msg != nil {
		d.rsps = append(d.rsps, msg.(*mover.TransferDoneRsp))
		madeProgress = true
	}

	return madeProgress
}

func run() {
	engine := sim.NewSerialEngine()

	storage := mem.NewStorage(64 * mem.MB)
	fillPattern(storage)

	memComp := idealburstmem.MakeBuilder().
		WithEngine(engine).
		WithLatency(flagMemLatency).
		WithStorage(storage).
		Build("Mem")
	sink := stream.MakeSinkBuilder().
		WithEngine(engine).
		WithAcceptEvery(flagSinkEvery).
		Build("Sink")
	mv := mover.MakeBuilder().
		WithEngine(engine).
		WithWordSize(flagWordSize).
		WithBufferDepth(flagBufferDepth).
		WithMemPortMapper(&mem.SinglePortMapper{
			Port: memComp.GetPortByName("Top").AsRemote(),
		}).
		WithStreamDst(sink.GetPortByName("In").AsRemote()).
		Build("Mover")
	drv := newDriver(engine)

	conn := directconnection.MakeBuilder().
		WithEngine(engine).
		Build("Conn")
	conn.PlugIn(drv.port)
	conn.PlugIn(mv.GetPortByName("Ctrl"))
	conn.PlugIn(mv.GetPortByName("Mem"))
	conn.PlugIn(mv.GetPortByName("Stream"))
	conn.PlugIn(memComp.GetPortByName("Top"))
	conn.PlugIn(sink.GetPortByName("In"))

	if flagFaultAddr >= 0 {
		memComp.InjectFaultAt(uint64(flagFaultAddr))
	}

	setupTracing(engine, mv, memComp)

	req := mover.MoveRequestBuilder{}.
		WithSrc(drv.port.AsRemote()).
		WithDst(mv.GetPortByName("Ctrl").AsRemote()).
		WithSrcAddress(flagSrcAddress).
		WithLengthBytes(flagLengthBytes).
		WithMaxBurstWords(flagMaxBurstWords).
		Build()
	drv.toSend = append(drv.toSend, req)
	drv.TickLater()

	err := engine.Run()
	if err != nil {
		log.Fatalf("simulation failed: %v", err)
	}
	engine.Finished()

	report(engine, drv, sink)
	atexit.Exit(0)
}

func fillPattern(storage *mem.Storage) {
	if flagLengthBytes == 0 {
		return
	}

	data := make([]byte, flagLengthBytes)
	for i := range data {
		data[i] = byte(flagSrcAddress + uint64(i))
	}

	err := storage.Write(flagSrcAddress, data)
	if err != nil {
		log.Fatalf("cannot initialize storage: %v", err)
	}
}

func setupTracing(
	engine sim.Engine,
	mv *mover.Comp,
	memComp *idealburstmem.Comp,
) {
	if flagTraceCSV != "" {
		writer := tracing.NewCSVTraceWriter(flagTraceCSV)
		writer.Init()
		tracer := tracing.NewDBTracer(engine, writer)
		tracing.CollectTrace(mv, tracer)
		tracing.CollectTrace(memComp, tracer)
	}

	if flagTraceDB != "" {
		writer := tracing.NewSQLiteTraceWriter(flagTraceDB)
		writer.Init()
		tracer := tracing.NewDBTracer(engine, writer)
		tracing.CollectTrace(mv, tracer)
		tracing.CollectTrace(memComp, tracer)
	}
}

func report(engine sim.Engine, drv *driver, sink *stream.Sink) {
	fmt.Printf("simulated time: %.9fs\n", float64(engine.CurrentTime()))
	fmt.Printf("words delivered: %d\n", sink.WordCount())

	if len(drv.rsps) == 0 {
		fmt.Println("transfer result: no response received")
		return
	}

	rsp := drv.rsps[0]
	if rsp.Err == mover.ErrNone {
		fmt.Println("transfer result: done")
	} else {
		fmt.Printf("transfer result: error (%s)\n", rsp.Err)
	}
}
