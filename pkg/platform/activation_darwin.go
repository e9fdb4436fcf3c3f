//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa
#import <Cocoa/Cocoa.h>

void setAccessoryPolicy(void) {
    [NSApp setActivationPolicy:NSApplicationActivationPolicyAccessory];
}
*/
import "C"

import "github.com/borgmon/review-nudger/pkg/logger"

// SetActivationPolicy hides the dock icon so the app lives in the menu bar
func SetActivationPolicy() {
	logger.Debug("Setting accessory activation policy")
	C.setAccessoryPolicy()
}
