//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework AppKit
#import <Cocoa/Cocoa.h>
#import <AppKit/AppKit.h>

int isAppActive() {
    return [NSApp isActive] ? 1 : 0;
}

void activateApp() {
    [NSApp activateIgnoringOtherApps:YES];
}
*/
import "C"

// IsAppActive reports whether the application has focus
func IsAppActive() bool {
	return C.isAppActive() == 1
}

// ActivateApp brings the application in front of other apps. An accessory
// app is not raised by showing a window alone.
func ActivateApp() {
	C.activateApp()
}
