//go:build cgo && ocgcore

package core

/*
#include <pthread.h>
#include <stdlib.h>

#define SCRIPT_BUFFER_SIZE 0x100000

static pthread_key_t script_key;
static pthread_once_t script_once = PTHREAD_ONCE_INIT;

static void script_key_init(void) {
	pthread_key_create(&script_key, free);
}

unsigned char* ygo_script_buffer(void) {
	pthread_once(&script_once, script_key_init);
	unsigned char* buf = pthread_getspecific(script_key);
	if (buf == NULL) {
		buf = malloc(SCRIPT_BUFFER_SIZE);
		pthread_setspecific(script_key, buf);
	}
	return buf;
}
*/
import "C"

import "unsafe"

// scriptBufferSize bounds a single card script.
const scriptBufferSize = C.SCRIPT_BUFFER_SIZE

// scriptBufferAddr returns the calling thread's script buffer.
func scriptBufferAddr() uintptr {
	return uintptr(unsafe.Pointer(C.ygo_script_buffer()))
}
