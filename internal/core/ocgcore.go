//go:build cgo && ocgcore

package core

/*
#cgo LDFLAGS: -locgcore -lstdc++ -llua -lm
#include <stdint.h>
#include <stdlib.h>

struct card_data {
	uint32_t code;
	uint32_t alias;
	uint64_t setcode;
	uint32_t type;
	uint32_t level;
	uint32_t attribute;
	uint32_t race;
	int32_t attack;
	int32_t defense;
	uint32_t lscale;
	uint32_t rscale;
	uint32_t link_marker;
};

typedef uint32_t (*card_reader)(uint32_t, struct card_data*);
typedef unsigned char* (*script_reader)(const char*, int*);

extern void set_card_reader(card_reader f);
extern void set_script_reader(script_reader f);
extern intptr_t create_duel(uint32_t seed);
extern void start_duel(intptr_t pduel, int32_t options);
extern void end_duel(intptr_t pduel);
extern void set_player_info(intptr_t pduel, int32_t playerid, int32_t lp, int32_t startcount, int32_t drawcount);
extern int32_t get_message(intptr_t pduel, unsigned char* buf);
extern int32_t process(intptr_t pduel);
extern void new_card(intptr_t pduel, uint32_t code, uint8_t owner, uint8_t playerid, uint8_t location, uint8_t sequence, uint8_t position);
extern int32_t query_card(intptr_t pduel, uint8_t playerid, uint8_t location, uint8_t sequence, int32_t query_flag, unsigned char* buf, int32_t use_cache);
extern int32_t query_field_count(intptr_t pduel, uint8_t playerid, uint8_t location);
extern int32_t query_field_card(intptr_t pduel, uint8_t playerid, uint8_t location, int32_t query_flag, unsigned char* buf, int32_t use_cache);
extern void set_responsei(intptr_t pduel, int32_t value);
extern void set_responseb(intptr_t pduel, unsigned char* buf);

extern unsigned char* ygo_script_buffer(void);
extern uint32_t ygoCardReader(uint32_t code, struct card_data* data);
extern unsigned char* ygoScriptReader(char* name, int* len);
*/
import "C"

import (
	"sync"
	"unsafe"
)

var (
	readersMu    sync.RWMutex
	cardReader   CardReader
	scriptReader ScriptReader
)

//export ygoCardReader
func ygoCardReader(code C.uint32_t, data *C.struct_card_data) C.uint32_t {
	readersMu.RLock()
	r := cardReader
	readersMu.RUnlock()

	data.code = code
	if r == nil {
		return 0
	}
	cd, ok := r(uint32(code))
	if !ok {
		return 0
	}
	data.alias = C.uint32_t(cd.Alias)
	data.setcode = C.uint64_t(cd.Setcode)
	data._type = C.uint32_t(cd.Type)
	data.level = C.uint32_t(cd.Level)
	data.attribute = C.uint32_t(cd.Attribute)
	data.race = C.uint32_t(cd.Race)
	data.attack = C.int32_t(cd.Attack)
	data.defense = C.int32_t(cd.Defense)
	data.lscale = C.uint32_t(cd.LScale)
	data.rscale = C.uint32_t(cd.RScale)
	data.link_marker = C.uint32_t(cd.LinkMarker)
	return 0
}

//export ygoScriptReader
func ygoScriptReader(name *C.char, length *C.int) *C.uchar {
	readersMu.RLock()
	r := scriptReader
	readersMu.RUnlock()

	if r == nil {
		return nil
	}
	src := r(C.GoString(name))
	if src == nil || len(src) > scriptBufferSize {
		return nil
	}
	// The engine loads the script on this thread before the C call that
	// asked for it returns, so a per-thread buffer is never shared.
	buf := C.ygo_script_buffer()
	if buf == nil {
		return nil
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(buf)), scriptBufferSize), src)
	*length = C.int(len(src))
	return buf
}

// OCGCore is the cgo binding to a linked libocgcore.
type OCGCore struct{}

// NewOCGCore returns the process-wide engine binding.
func NewOCGCore() *OCGCore {
	return &OCGCore{}
}

func (OCGCore) SetCardReader(r CardReader) {
	readersMu.Lock()
	cardReader = r
	readersMu.Unlock()
	C.set_card_reader(C.card_reader(C.ygoCardReader))
}

func (OCGCore) SetScriptReader(r ScriptReader) {
	readersMu.Lock()
	scriptReader = r
	readersMu.Unlock()
	C.set_script_reader(C.script_reader(C.ygoScriptReader))
}

func (OCGCore) CreateDuel(seed uint32) Duel {
	return Duel(C.create_duel(C.uint32_t(seed)))
}

func (OCGCore) StartDuel(d Duel, options uint32) {
	C.start_duel(C.intptr_t(d), C.int32_t(options))
}

func (OCGCore) EndDuel(d Duel) {
	C.end_duel(C.intptr_t(d))
}

func (OCGCore) SetPlayerInfo(d Duel, player, lp, startCount, drawCount int32) {
	C.set_player_info(C.intptr_t(d), C.int32_t(player), C.int32_t(lp), C.int32_t(startCount), C.int32_t(drawCount))
}

func (OCGCore) NewCard(d Duel, code uint32, owner, player, location, sequence, position uint8) {
	C.new_card(C.intptr_t(d), C.uint32_t(code), C.uint8_t(owner), C.uint8_t(player),
		C.uint8_t(location), C.uint8_t(sequence), C.uint8_t(position))
}

func (OCGCore) Process(d Duel) uint32 {
	return uint32(C.process(C.intptr_t(d)))
}

func (OCGCore) GetMessage(d Duel, buf []byte) int {
	tmp := (*C.uchar)(C.malloc(MessageBufferSize))
	defer C.free(unsafe.Pointer(tmp))
	n := int(C.get_message(C.intptr_t(d), tmp))
	return copy(buf, unsafe.Slice((*byte)(unsafe.Pointer(tmp)), n))
}

func (OCGCore) QueryCard(d Duel, player, location, sequence uint8, flags uint32, buf []byte, useCache bool) int {
	tmp := (*C.uchar)(C.malloc(QueryBufferSize))
	defer C.free(unsafe.Pointer(tmp))
	n := int(C.query_card(C.intptr_t(d), C.uint8_t(player), C.uint8_t(location), C.uint8_t(sequence),
		C.int32_t(flags), tmp, cBool(useCache)))
	return copy(buf, unsafe.Slice((*byte)(unsafe.Pointer(tmp)), n))
}

func (OCGCore) QueryFieldCount(d Duel, player, location uint8) int {
	return int(C.query_field_count(C.intptr_t(d), C.uint8_t(player), C.uint8_t(location)))
}

func (OCGCore) QueryFieldCard(d Duel, player, location uint8, flags uint32, buf []byte, useCache bool) int {
	tmp := (*C.uchar)(C.malloc(QueryBufferSize))
	defer C.free(unsafe.Pointer(tmp))
	n := int(C.query_field_card(C.intptr_t(d), C.uint8_t(player), C.uint8_t(location),
		C.int32_t(flags), tmp, cBool(useCache)))
	return copy(buf, unsafe.Slice((*byte)(unsafe.Pointer(tmp)), n))
}

func (OCGCore) SetResponseI(d Duel, v int32) {
	C.set_responsei(C.intptr_t(d), C.int32_t(v))
}

// SetResponseB hands the engine a full, zero-padded response block; the
// engine always copies ResponseBufferSize bytes.
func (OCGCore) SetResponseB(d Duel, buf []byte) {
	block, err := PadResponse(buf)
	if err != nil {
		panic(err)
	}
	tmp := (*C.uchar)(C.CBytes(block[:]))
	defer C.free(unsafe.Pointer(tmp))
	C.set_responseb(C.intptr_t(d), tmp)
}

func cBool(b bool) C.int32_t {
	if b {
		return 1
	}
	return 0
}

// Default returns the linked engine.
func Default() (Engine, error) {
	return NewOCGCore(), nil
}
