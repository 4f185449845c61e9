// Package browser implements host.Environment on the Web Notifications API
// of a browser running the program as WebAssembly (GOOS=js GOARCH=wasm).
//
//	func main() {
//		browser.Install()
//		if notification.IsSupported() {
//			notification.RequestPermission(nil)
//		}
//		select {}
//	}
package browser
