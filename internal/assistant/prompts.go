package assistant

// DefaultSystemPrompt describes the assistant to the model.
const DefaultSystemPrompt = "You are Deskmate, a desktop AI assistant with the following capabilities:\n" +
	"- Screen reading and analysis\n" +
	"- Webcam scene analysis\n" +
	"- Desktop control (typing, clicking, mouse movement)\n" +
	"- Long-term memory and conversation history\n" +
	"- Multiple voice profiles\n\n" +
	"Available tools: screen_read, webcam_analyze, type_text, click, move_mouse\n" +
	"Always be helpful, concise, and natural in your responses.\n" +
	"If the user asks about your capabilities, explain what you can do."

// ErrorReply is spoken when a turn fails.
const ErrorReply = "I encountered an error processing your request."

const helpText = "I'm Deskmate, your desktop assistant. Here's what I can do:\n\n" +
	"**Perception & Analysis:**\n" +
	"- Read and analyze your screen content\n" +
	"- Describe what the webcam sees\n" +
	"- Understand natural language commands\n\n" +
	"**Desktop Control:**\n" +
	"- Type text: 'type: Hello World'\n" +
	"- Click: 'click 500 400' or 'click here'\n" +
	"- Move mouse: 'move 1000 500'\n\n" +
	"**Memory & Context:**\n" +
	"- Remember our conversations\n" +
	"- Learn your preferences\n" +
	"- Provide contextual responses\n\n" +
	"**Voice Interaction:**\n" +
	"- Multiple voice profiles (jarvis, friendly, news, whisper)\n" +
	"- Natural conversation flow\n\n" +
	"Try commands like:\n" +
	"- 'What's on my screen?'\n" +
	"- 'What do you see in the camera?'\n" +
	"- 'Type: Hello Professor'\n" +
	"- 'Click 500 400'\n" +
	"- 'Memory stats'\n" +
	"- 'Help'"

// Banner lists example commands for console mode.
const Banner = "Deskmate Console Mode\n" +
	"Available commands:\n" +
	"- what's on my screen?\n" +
	"- what do you see in the camera?\n" +
	"- type: Hello Professor\n" +
	"- click 500 400\n" +
	"- move 1000 500\n" +
	"- help\n" +
	"- memory stats\n" +
	"Type 'quit' or press Ctrl+C to exit.\n"

// VoiceGreeting is spoken when the voice loop starts.
const VoiceGreeting = "Voice mode ready. Say something."
