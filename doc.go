// Package irphy implements the PHY layer of an infrared remote-control transceiver: a
// descriptor-driven transmit waveform scheduler and an edge-plus-timeout receive capture
// state machine, each built against a small Timer/Carrier/EdgeInput hardware abstraction so
// that the same core runs against real silicon (see hw/periph, hw/embd) or against the
// software test double in hw/sim. Protocol-level encoding/decoding (NEC, RC-5, ...) is out of
// scope; this package only ever talks about marks, spaces, and microseconds.
package irphy
