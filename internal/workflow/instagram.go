package workflow

// FlowVersion identifies the selector revision the Instagram flow was
// recorded against. Selectors are data: when the UI ships new class names,
// only this file changes.
const InstagramFlowVersion = "2024-01"

// InstagramLogin holds the credentials and entry point for the flow.
type InstagramLogin struct {
	URL      string
	Username string
	Password string
}

// InstagramPublishSteps returns the full reel publishing sequence: login,
// open the composer, attach the video, keep the original crop, caption and
// share, then wait for the shared-confirmation dialog.
func InstagramPublishSteps(login InstagramLogin, videoPath, description string) []Step {
	return []Step{
		{Name: "username", Selector: `input[name="username"]`, Action: ActionType, Input: login.Username, Humanlike: true},
		{Name: "password", Selector: `input[name="password"]`, Action: ActionType, Input: login.Password, Humanlike: true},
		{Name: "log in", Selector: `button[type='submit']`, Action: ActionClick, Humanlike: true},
		{Name: "dismiss save login", Selector: `._ac8f`, Action: ActionClick, Humanlike: true},
		{Name: "dismiss notifications", Selector: `._a9--._ap36._a9_1`, Action: ActionClick, Humanlike: true},
		{Name: "open create menu", Selector: `.x9f619.xxk0z11.xii2z7h.x11xpdln.x19c4wfv.xvy4d1p`, Action: ActionClick, ElementIndex: 6, Humanlike: true},
		{Name: "select post", Selector: `.x9f619.x1n2onr6.x1ja2u2z.x78zum5.x2lah0s.x1qughib.x6s0dn4.xozqiw3.x1q0g3np`, Action: ActionClick, Humanlike: true},
		{Name: "attach video", Selector: `._ac69`, Action: ActionUploadFile, Input: videoPath, Humanlike: true},
		{Name: "confirm reel dialog", Selector: `._acan._acap._acaq._acas._acav._aj1-._ap30`, Action: ActionClick, Humanlike: true},
		{Name: "open crop menu", Selector: `._abfz._abg1`, Action: ActionClick, Humanlike: true},
		{Name: "crop original", Selector: `._ac36._ac38 > div`, Action: ActionClick, Humanlike: true},
		{Name: "crop next", Selector: `._ac7b._ac7d`, Action: ActionClick, Humanlike: true},
		{Name: "edit next", Selector: `._ac7b._ac7d`, Action: ActionClick, Humanlike: true},
		{Name: "caption", Selector: `.xw2csxc.x1odjw0f.x1n2onr6.x1hnll1o.xpqswwc.xl565be.x5dp1im.xdj266r.x11i5rnm.xat24cr.x1mh8g0r.x1w2wdq1.xen30ot.x1swvt13.x1pi30zi.xh8yej3.x5n08af.notranslate`, Action: ActionType, Input: description, Humanlike: true},
		{Name: "share", Selector: `._ac7b._ac7d`, Action: ActionClick, Humanlike: true},
		{Name: "shared confirmation", Selector: `.x1lliihq.x1plvlek.xryxfnj.x1n2onr6.x193iq5w.xeuugli.x1fj9vlw.x13faqbe.x1vvkbs.x1s928wv.xhkezso.x1gmr53x.x1cpjm7i.x1fgarty.x1943h6x.x1i0vuye.x1ms8i2q.xo1l8bm.x5n08af.x2b8uid.x4zkp8e.xw06pyt.x10wh9bi.x1wdrske.x8viiok.x18hxmgj`, Action: ActionWaitPresent, AwaitConfirmation: true},
	}
}
